package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// maxBody bounds request bodies read by ReadFields.
const maxBody = 1 << 20

// Fields holds raw request values keyed by field name. JSON and form
// bodies both end up here so handlers parse them through the same
// validation path.
type Fields map[string]string

func (f Fields) Get(name string) string { return f[name] }

// Has reports whether the field was present in the request at all.
func (f Fields) Has(name string) bool {
	_, ok := f[name]
	return ok
}

// IsJSON reports whether the request carries a JSON body.
func IsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// ReadFields decodes a flat JSON object or a form body. JSON numbers keep
// their literal text; booleans become "true"/"false"; null is skipped.
func ReadFields(r *http.Request) (Fields, error) {
	fields := make(Fields)
	if IsJSON(r) {
		dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBody))
		dec.UseNumber()
		var raw map[string]any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode json body: %w", err)
		}
		for k, val := range raw {
			switch t := val.(type) {
			case nil:
			case string:
				fields[k] = t
			case json.Number:
				fields[k] = t.String()
			case bool:
				if t {
					fields[k] = "true"
				} else {
					fields[k] = "false"
				}
			default:
				return nil, fmt.Errorf("field %q: nested values are not supported", k)
			}
		}
		return fields, nil
	}
	r.Body = http.MaxBytesReader(nil, r.Body, maxBody)
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}
	for k, vals := range r.PostForm {
		if len(vals) > 0 {
			fields[k] = vals[0]
		}
	}
	return fields, nil
}
