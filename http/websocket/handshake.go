package websocket

import (
	"crypto/sha1"
	"encoding/base64"
	"strings"

	"github.com/hornet-web/hornet/http"
	"github.com/hornet-web/hornet/http/method"
	"github.com/hornet-web/hornet/http/status"
	"github.com/indigo-web/utils/strcomp"
)

const acceptGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

var (
	ErrBadMethod      = status.NewError(status.BadRequest, "Invalid request method.")
	ErrNoConnection   = status.NewError(status.BadRequest, "Connection header is missing.")
	ErrNoUpgrade      = status.NewError(status.BadRequest, "Connection header does not specify to upgrade.")
	ErrNotWebSocket   = status.NewError(status.BadRequest, "Upgrade header is not set to websocket.")
	ErrMissingKey     = status.NewError(status.BadRequest, "Sec-WebSocket-Key header is missing.")
	ErrUpgradeFailure = status.NewError(status.InternalServerError, "Failed to handshake.")
)

// AcceptKey computes the Sec-WebSocket-Accept value for the client's key.
func AcceptKey(key string) string {
	digest := sha1.Sum([]byte(strings.TrimSpace(key) + acceptGUID))
	return base64.StdEncoding.EncodeToString(digest[:])
}

// Validate checks whether the request is a well-formed upgrade request and returns the
// client's key.
func Validate(request *http.Request) (key string, err error) {
	if request.Method != method.GET {
		return "", ErrBadMethod
	}

	if !request.Headers.Has("Connection") {
		return "", ErrNoConnection
	}

	// the token may come in any of the Connection header lines
	if !request.Headers.Contains("Connection", "upgrade") {
		return "", ErrNoUpgrade
	}

	if !strcomp.EqualFold(strings.TrimSpace(request.Headers.Value("Upgrade")), "websocket") {
		return "", ErrNotWebSocket
	}

	key = strings.TrimSpace(request.Headers.Value("Sec-WebSocket-Key"))
	if len(key) == 0 {
		return "", ErrMissingKey
	}

	return key, nil
}

// Upgrade performs the handshake and hijacks the connection. The returned Conn must not
// outlive the handler: the connection is closed as soon as the handler returns.
func Upgrade(request *http.Request) (*Conn, error) {
	key, err := Validate(request)
	if err != nil {
		request.Logger().Printf("websocket: rejected upgrade: %s", err)
		return nil, err
	}

	client := request.Hijack()
	response := request.Respond().
		Code(status.SwitchingProtocols).
		Header("Upgrade", "websocket").
		Header("Connection", "Upgrade").
		Header("Sec-WebSocket-Accept", AcceptKey(key))

	if err = response.WriteTo(client, request.Proto, true); err != nil {
		request.Logger().Printf("websocket: writing handshake: %s", err)
		return nil, ErrUpgradeFailure
	}

	return newConn(client, request.Config().WebSocket, request.Logger()), nil
}

// BadRequest is the response to return from the handler if the upgrade failed.
func BadRequest(request *http.Request) *http.Response {
	return request.Respond().
		Code(status.BadRequest).
		ContentType("text/plain").
		String("Bad Request")
}
