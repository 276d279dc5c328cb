package http

import "github.com/supranim/supranim-sub001/core/codec"

// Bind decodes the request body into v. The codec is chosen from the
// request's Content-Type: protobuf for application/x-protobuf, JSON
// otherwise.
func (r *Request) Bind(v any) error {
	return codec.ForContentType(r.Header("Content-Type")).Decode(r.Body(), v)
}
