package internal

import (
	"context"
	"crypto/tls"
	"net"
	"net/http/httptrace"
	"net/netip"
	"reflect"
)

var stdNetTraceKey, stdHttpTraceKey interface{}

type captureContext struct {
	context.Context
	capture func(reflect.Type)
}

func (c captureContext) Value(key interface{}) interface{} {
	c.capture(reflect.TypeOf(key))
	return nil
}

func init() {
	var stdNetTraceType, stdHttpTraceType reflect.Type

	capture := captureContext{context.Background(), nil}
	capture.capture = func(t reflect.Type) { stdNetTraceType = t }
	(&net.Dialer{}).DialContext(capture, "invalid", "")
	capture.capture = func(t reflect.Type) { stdHttpTraceType = t }
	httptrace.ContextClientTrace(capture)

	if stdNetTraceType != nil {
		stdNetTraceKey = reflect.New(stdNetTraceType).Elem().Interface()
	}
	if stdHttpTraceType != nil {
		stdHttpTraceKey = reflect.New(stdHttpTraceType).Elem().Interface()
	}
}

// shadowStandardClientTrace hides the caller's trace from net.Resolver and
// net.Dialer, the connection fires those hooks itself so they run once.
func shadowStandardClientTrace(ctx context.Context) context.Context {
	if stdHttpTraceKey != nil {
		ctx = context.WithValue(ctx, stdHttpTraceKey, nil)
	}
	if stdNetTraceKey != nil {
		ctx = context.WithValue(ctx, stdNetTraceKey, nil)
	}
	return ctx
}

// tracer fires the [httptrace.ClientTrace] hooks found on a context, a
// missing trace or hook is skipped.
type tracer struct {
	*httptrace.ClientTrace
}

func traceFrom(ctx context.Context) tracer {
	return tracer{httptrace.ContextClientTrace(ctx)}
}

func (t tracer) dnsStart(host string) {
	if t.ClientTrace != nil && t.DNSStart != nil {
		t.DNSStart(httptrace.DNSStartInfo{Host: host})
	}
}

func (t tracer) dnsDone(eps []netip.AddrPort, err error) {
	if t.ClientTrace == nil || t.DNSDone == nil {
		return
	}
	addrs := make([]net.IPAddr, len(eps))
	for i, ep := range eps {
		addrs[i] = net.IPAddr{IP: ep.Addr().AsSlice(), Zone: ep.Addr().Zone()}
	}
	t.DNSDone(httptrace.DNSDoneInfo{Addrs: addrs, Err: err})
}

func (t tracer) connectStart(addr string) {
	if t.ClientTrace != nil && t.ConnectStart != nil {
		t.ConnectStart("tcp", addr)
	}
}

func (t tracer) connectDone(addr string, err error) {
	if t.ClientTrace != nil && t.ConnectDone != nil {
		t.ConnectDone("tcp", addr, err)
	}
}

func (t tracer) tlsHandshakeStart() {
	if t.ClientTrace != nil && t.TLSHandshakeStart != nil {
		t.TLSHandshakeStart()
	}
}

func (t tracer) tlsHandshakeDone(c *tls.Conn, err error) {
	if t.ClientTrace == nil || t.TLSHandshakeDone == nil {
		return
	}
	var state tls.ConnectionState
	if c != nil {
		state = c.ConnectionState()
	}
	t.TLSHandshakeDone(state, err)
}

func (t tracer) wroteHeaders() {
	if t.ClientTrace != nil && t.WroteHeaders != nil {
		t.WroteHeaders()
	}
}

func (t tracer) wroteRequest(err error) {
	if t.ClientTrace != nil && t.WroteRequest != nil {
		t.WroteRequest(httptrace.WroteRequestInfo{Err: err})
	}
}

func (t tracer) wantsFirstByte() bool {
	return t.ClientTrace != nil && t.GotFirstResponseByte != nil
}

func (t tracer) gotFirstResponseByte() {
	if t.wantsFirstByte() {
		t.GotFirstResponseByte()
	}
}
