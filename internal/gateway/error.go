package gateway

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/cityparkhub/parkctl/internal/pkg/apperror"
)

// errorEnvelope covers the response-body shapes the backend has been observed
// to send: a plain {"error": "..."} string, a {"message": "..."} string, or a
// FastAPI-style "detail" that may be a string, a list of {loc, msg} field
// errors, a single such object, or an arbitrary object.
type errorEnvelope struct {
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail"`
}

// fieldDetail is one entry of a framework field-validation list.
type fieldDetail struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// normalizeStatusError converts a non-2xx response into an AppError, pulling
// the richest human-readable message out of the body. A 401 is surfaced as
// unauthenticated so callers can redirect to login instead of toasting.
func normalizeStatusError(status int, body []byte) *apperror.AppError {
	msg := messageFromBody(body)
	if msg == "" {
		msg = fmt.Sprintf("server error: %d", status)
	}

	if status == http.StatusUnauthorized {
		return &apperror.AppError{
			Kind:    apperror.KindUnauthenticated,
			Status:  status,
			Message: msg,
		}
	}
	return apperror.Server(status, msg)
}

// messageFromBody extracts a message from a known error-body shape, or
// returns empty when the body is not recognizable.
func messageFromBody(body []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}

	if env.Error != "" {
		return env.Error
	}
	if len(env.Detail) > 0 {
		if msg := messageFromDetail(env.Detail); msg != "" {
			return msg
		}
	}
	return env.Message
}

// messageFromDetail renders the "detail" field. Field-error lists become
// "<field path>: <message>" pairs joined by commas.
func messageFromDetail(detail json.RawMessage) string {
	var s string
	if err := json.Unmarshal(detail, &s); err == nil {
		return s
	}

	var list []fieldDetail
	if err := json.Unmarshal(detail, &list); err == nil && len(list) > 0 {
		msgs := make([]string, 0, len(list))
		for _, fd := range list {
			msgs = append(msgs, renderFieldDetail(fd))
		}
		return strings.Join(msgs, ", ")
	}

	var single fieldDetail
	if err := json.Unmarshal(detail, &single); err == nil && single.Msg != "" {
		return renderFieldDetail(single)
	}

	var obj map[string]any
	if err := json.Unmarshal(detail, &obj); err == nil && len(obj) > 0 {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		msgs := make([]string, 0, len(obj))
		for _, k := range keys {
			msgs = append(msgs, fmt.Sprintf("%s: %v", k, obj[k]))
		}
		return strings.Join(msgs, ", ")
	}

	return ""
}

// renderFieldDetail formats one {loc, msg} pair as "body.start_time: invalid".
func renderFieldDetail(fd fieldDetail) string {
	if len(fd.Loc) == 0 {
		return fd.Msg
	}
	parts := make([]string, 0, len(fd.Loc))
	for _, p := range fd.Loc {
		parts = append(parts, locSegment(p))
	}
	return fmt.Sprintf("%s: %s", strings.Join(parts, "."), fd.Msg)
}

// locSegment renders a path element. JSON numbers arrive as float64 and array
// indices must not print as "1.000000".
func locSegment(v any) string {
	if f, ok := v.(float64); ok && f == math.Trunc(f) {
		return strconv.Itoa(int(f))
	}
	return fmt.Sprintf("%v", v)
}
