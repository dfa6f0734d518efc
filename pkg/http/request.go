package http

import (
	"context"
	"net"
	"net/http"
)

// ClientMeta identifies the caller of a request for audit records.
type ClientMeta struct {
	IPAddress string
	UserAgent string
}

// ExtractClientMeta reads the caller address and user agent. Proxy headers are
// resolved upstream by chi's RealIP middleware, so only RemoteAddr is read here.
func ExtractClientMeta(r *http.Request) ClientMeta {
	return ClientMeta{
		IPAddress: remoteIP(r),
		UserAgent: r.UserAgent(),
	}
}

func remoteIP(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	// RemoteAddr may include port: "ip:port"
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}

type clientMetaKey struct{}

// ContextWithClientMeta stores caller details for downstream audit records.
func ContextWithClientMeta(ctx context.Context, meta ClientMeta) context.Context {
	return context.WithValue(ctx, clientMetaKey{}, meta)
}

func ClientMetaFromContext(ctx context.Context) (ClientMeta, bool) {
	meta, ok := ctx.Value(clientMetaKey{}).(ClientMeta)
	return meta, ok
}
