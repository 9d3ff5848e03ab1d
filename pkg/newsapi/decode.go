package newsapi

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Envelope is a decodable top-level response shape.
type Envelope interface {
	ArticleList | AllNewsSources
}

// Decode parses body into T. An empty body fails with ErrNoData; anything that does not
// match T's shape, including a missing required key, fails with ErrCouldNotParse.
// Decode is pure: equal inputs always give equal results.
func Decode[T Envelope](body []byte) (T, error) {
	var out T
	if len(bytes.TrimSpace(body)) == 0 {
		return out, newError("", ErrNoData, nil)
	}
	if err := json.Unmarshal(body, &out); err != nil {
		var zero T
		return zero, newError("", ErrCouldNotParse, parseCause(body, err))
	}
	return out, nil
}

// DecodeArticleList decodes a top-headlines or everything response.
func DecodeArticleList(body []byte) (ArticleList, error) {
	return Decode[ArticleList](body)
}

// DecodeSources decodes a sources response.
func DecodeSources(body []byte) (AllNewsSources, error) {
	return Decode[AllNewsSources](body)
}

// parseCause attaches the upstream error envelope, when body is one, to the decode error.
func parseCause(body []byte, err error) error {
	var apiErr APIError
	if json.Unmarshal(body, &apiErr) != nil || apiErr.Status != "error" {
		return err
	}
	return errors.Join(&apiErr, err)
}
