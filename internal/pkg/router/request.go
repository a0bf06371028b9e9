package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/shandysiswandi/ordernotify/internal/pkg/goerror"
)

var errTrailingData = errors.New("router: data after JSON body")

type Request struct {
	*http.Request
}

// DecodeBody reads exactly one JSON document into dst. Unknown fields are
// ignored because the checkout posts its whole state.
func (r *Request) DecodeBody(dst any) error {
	if r.Body == nil {
		return goerror.Invalid(io.EOF, "")
	}

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return goerror.Invalid(err, "")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return goerror.Invalid(errTrailingData, "")
	}
	return nil
}
