package bind

import (
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strings"

	perr "contextual/internal/platform/errors"

	"github.com/go-playground/form/v4"
)

var qdec = newQueryDecoder()

func newQueryDecoder() *form.Decoder {
	d := form.NewDecoder()
	d.SetTagName("query")
	d.RegisterCustomTypeFunc(func(vals []string) (any, error) {
		b, err := ParseBool(vals[0])
		return b, err
	}, false)
	return d
}

// Query binds r's query string into T using `query:"name"` tags, then validates
// Unparseable values are invalid arguments; validator failures keep the validation code
func Query[T any](r *http.Request) (T, error) {
	var zero T
	var dst T
	if rt := reflect.TypeOf(dst); rt == nil || rt.Kind() != reflect.Struct {
		return zero, perr.Internalf("bind.Query: %T is not a struct", dst)
	}
	if err := qdec.Decode(&dst, present(r.URL.Query())); err != nil {
		return zero, decodeErr(err)
	}
	if err := validate(dst); err != nil {
		return zero, err
	}
	return dst, nil
}

// present keeps the first trimmed value of each key; an empty value counts as absent
func present(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, vs := range q {
		if len(vs) == 0 {
			continue
		}
		if v := strings.TrimSpace(vs[0]); v != "" {
			out[k] = []string{v}
		}
	}
	return out
}

// decodeErr reports the first failing field by name so responses are stable
func decodeErr(err error) error {
	errs, ok := err.(form.DecodeErrors)
	if !ok || len(errs) == 0 {
		return perr.Wrap(err, perr.ErrorCodeInvalidArgument, "query decode")
	}
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)
	name := names[0]
	return perr.WithField(perr.InvalidArgf("%s: %v", name, errs[name]), name)
}

// ParseBool accepts true/false, 1/0, yes/no and on/off in any case
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on", "t", "y":
		return true, nil
	case "false", "0", "no", "off", "f", "n":
		return false, nil
	}
	return false, perr.InvalidArgf("invalid boolean %q", s)
}
