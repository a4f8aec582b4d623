/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package httplink

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/botobag/graphmux"
	"github.com/botobag/graphmux/document"
	"github.com/botobag/graphmux/link"
)

// DefaultMaxBodySize caps the request body read by a Handler.
const DefaultMaxBodySize = 10 << 20

// HandlerOption configures a Handler.
type HandlerOption func(h *handler)

// MaxBodySize sets the maximum number of bytes read from a request body.
func MaxBodySize(size int64) HandlerOption {
	return func(h *handler) {
		h.maxBodySize = size
	}
}

type handler struct {
	link        link.Link
	maxBodySize int64
}

// Handler serves GraphQL requests over HTTP by executing them through l. It accepts GET requests
// with the query in URL parameters and POST requests with a JSON, form-encoded or
// application/graphql body. Requests that cannot be decoded are answered with 400; operations that
// fail in l are answered with 500. Both carry the failure in the "errors" entry of the body.
func Handler(l link.Link, opts ...HandlerOption) http.Handler {
	h := &handler{
		link:        l,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = graphmux.Op("httplink.Handler")

	req, err := h.parseRequest(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, graphmux.WrapError(err, "cannot decode request", op,
			graphmux.ErrKindInvalidArgument))
		return
	}

	doc, err := document.Parse(req.Query)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	operation := link.NewOperation(doc, req.Variables).WithContext(r.Context())
	if len(req.OperationName) > 0 {
		operation.OperationName = req.OperationName
	}
	operation.Extensions = req.Extensions

	result, err := link.Await(link.Execute(h.link, operation))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if result == nil {
		result = &link.Result{}
	}
	h.write(w, http.StatusOK, result)
}

func (h *handler) writeError(w http.ResponseWriter, status int, err error) {
	h.write(w, status, &link.Result{
		Errors: link.ResultErrors{{Message: err.Error()}},
	})
}

func (h *handler) write(w http.ResponseWriter, status int, result *link.Result) {
	body, err := json.Marshal(result)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(&link.Result{
			Errors: link.ResultErrors{{Message: err.Error()}},
		})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func (h *handler) parseRequest(r *http.Request) (*request, error) {
	switch r.Method {
	case http.MethodGet:
		return parseValues(r.URL.Query())

	case http.MethodPost:
		contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

		body, err := io.ReadAll(io.LimitReader(r.Body, h.maxBodySize+1))
		if err != nil {
			return nil, err
		}
		if int64(len(body)) > h.maxBodySize {
			return nil, fmt.Errorf("request body is larger than %d bytes", h.maxBodySize)
		}

		switch contentType {
		case "application/graphql":
			return &request{Query: string(body)}, nil

		case "application/x-www-form-urlencoded":
			values, err := url.ParseQuery(string(body))
			if err != nil {
				return nil, err
			}
			return parseValues(values)

		case "", "application/json":
			var req request
			if err := json.Unmarshal(body, &req); err != nil {
				return nil, err
			}
			return &req, nil
		}
		return nil, fmt.Errorf("unsupported content type %q", contentType)
	}

	return nil, fmt.Errorf("unsupported method %s", r.Method)
}

func oneValue(values url.Values, key string) (string, error) {
	v := values[key]
	switch len(v) {
	case 0:
		return "", nil
	case 1:
		return v[0], nil
	}
	return "", fmt.Errorf("%q is given %d times", key, len(v))
}

func parseValues(values url.Values) (*request, error) {
	var (
		req request
		err error
	)
	if req.Query, err = oneValue(values, "query"); err != nil {
		return nil, err
	}
	if req.OperationName, err = oneValue(values, "operationName"); err != nil {
		return nil, err
	}

	for key, target := range map[string]*map[string]interface{}{
		"variables":  &req.Variables,
		"extensions": &req.Extensions,
	} {
		value, err := oneValue(values, key)
		if err != nil {
			return nil, err
		}
		if len(value) > 0 {
			if err := json.UnmarshalFromString(value, target); err != nil {
				return nil, fmt.Errorf("invalid %s: %w", key, err)
			}
		}
	}
	return &req, nil
}
