package connection

import (
	"net/url"
	"strings"

	"github.com/rickgao/futures-stream/internal/api"
)

// ResolveEndpoints builds one streaming URL per instance server, in server
// order:
//
//	<endpoint>?token=<token>&[connectId=<connectID>]
//
// The bracketed connectId is the exchange's literal format. It is omitted
// when connectID is empty.
func ResolveEndpoints(creds *api.StreamingCredentials, connectID string) ([]string, error) {
	if creds == nil || len(creds.InstanceServers) == 0 {
		return nil, ErrNoEndpoints
	}

	token := url.QueryEscape(creds.Token)
	urls := make([]string, 0, len(creds.InstanceServers))
	for _, srv := range creds.InstanceServers {
		var b strings.Builder
		b.WriteString(srv.Endpoint)
		b.WriteString("?token=")
		b.WriteString(token)
		if connectID != "" {
			b.WriteString("&[connectId=")
			b.WriteString(connectID)
			b.WriteString("]")
		}
		urls = append(urls, b.String())
	}
	return urls, nil
}

// redactToken hides the token value of a streaming URL for logging.
func redactToken(u string) string {
	const key = "token="
	i := strings.Index(u, key)
	if i < 0 {
		return u
	}
	start := i + len(key)
	end := strings.IndexByte(u[start:], '&')
	if end < 0 {
		return u[:start] + "***"
	}
	return u[:start] + "***" + u[start+end:]
}
