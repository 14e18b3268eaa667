package middleware

import (
	"encoding/json"
	"strconv"
)

// jsonOrQuoted returns body unchanged when it is valid JSON, otherwise
// as a JSON string so it can be embedded in a log line.
func jsonOrQuoted(body []byte) []byte {
	if len(body) == 0 {
		return []byte(`null`)
	}
	if json.Valid(body) {
		return body
	}
	return []byte(strconv.Quote(string(body)))
}
