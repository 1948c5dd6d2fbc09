package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
)

const InvalidJSON = "{not-json"

func createJSONHTTPRequest(method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer

	switch v := body.(type) {
	case nil:
	case string:
		buf.WriteString(v)
	default:
		_ = json.NewEncoder(&buf).Encode(v)
	}

	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}
