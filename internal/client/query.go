package client

import (
	"net/url"
	"strconv"
)

// Query-string helpers shared by the list endpoints. Zero and empty
// values are omitted so the backend's defaults apply instead of being
// overridden with blanks.

func setNonEmpty(q url.Values, key, val string) {
	if val != "" {
		q.Set(key, val)
	}
}

func setPositive(q url.Values, key string, v int) {
	if v > 0 {
		q.Set(key, strconv.Itoa(v))
	}
}

func setBoolPtr(q url.Values, key string, v *bool) {
	if v != nil {
		q.Set(key, strconv.FormatBool(*v))
	}
}

func encodeQuery(q url.Values) string {
	if encoded := q.Encode(); encoded != "" {
		return "?" + encoded
	}
	return ""
}
