package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/fastprodman/seamlesswallet/internal/signature"
	"github.com/tidwall/gjson"
)

const maxBodyBytes = 1 << 20 // 1MB

var errBadParams = errors.New("bad parameters")

// readParams collects the callback parameters in the order the provider
// sent them: query string first, then a form or JSON object body.
func readParams(w http.ResponseWriter, r *http.Request) (signature.Params, error) {
	params, err := parseOrdered(r.URL.RawQuery)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	if r.Body == nil || r.Method == http.MethodGet {
		return params, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", errBadParams, err)
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		return params, nil
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch {
	case mediaType == "application/json" || (mediaType == "" && gjson.ValidBytes(body)):
		fromBody, err := parseJSONObject(body)
		if err != nil {
			return nil, err
		}

		return append(params, fromBody...), nil
	default:
		fromBody, err := parseOrdered(string(body))
		if err != nil {
			return nil, fmt.Errorf("form: %w", err)
		}

		return append(params, fromBody...), nil
	}
}

// parseOrdered decodes an application/x-www-form-urlencoded string without
// losing the pair order, which url.ParseQuery does.
func parseOrdered(raw string) (signature.Params, error) {
	var params signature.Params

	for pair := range strings.SplitSeq(raw, "&") {
		if pair == "" {
			continue
		}

		k, v, _ := strings.Cut(pair, "=")

		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, fmt.Errorf("%w: key %q: %w", errBadParams, k, err)
		}

		val, err := url.QueryUnescape(v)
		if err != nil {
			return nil, fmt.Errorf("%w: value of %q: %w", errBadParams, key, err)
		}

		params = append(params, signature.Param{Key: key, Value: val})
	}

	return params, nil
}

// parseJSONObject flattens a JSON object into params in document order.
// Numbers keep their literal text so "30.00" stays "30.00" for signing.
func parseJSONObject(body []byte) (signature.Params, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON body", errBadParams)
	}

	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: JSON body must be an object", errBadParams)
	}

	var params signature.Params

	root.ForEach(func(key, value gjson.Result) bool {
		var v string

		switch value.Type {
		case gjson.String:
			v = value.String()
		case gjson.Null:
			v = ""
		default:
			v = value.Raw
		}

		params = append(params, signature.Param{Key: key.String(), Value: v})

		return true
	})

	return params, nil
}
