package replicate

import "errors"

// ErrNoOutputURL is returned when a prediction output contains no resolvable URL.
var ErrNoOutputURL = errors.New("replicate: prediction output contains no resolvable URL")

// urlKeys are the object keys checked, in order, when the output is a map.
var urlKeys = []string{"url", "video", "output"}

// ResolveOutputURL coerces a prediction output into a plain URL string.
// Models return their result in different shapes: a string, a list of
// strings, or a URL-bearing object. Downstream upload requires a plain
// string, so this coercion is mandatory on every success path.
func ResolveOutputURL(output any) (string, error) {
	switch v := output.(type) {
	case string:
		if v == "" {
			return "", ErrNoOutputURL
		}
		return v, nil
	case []any:
		for _, item := range v {
			if url, err := ResolveOutputURL(item); err == nil {
				return url, nil
			}
		}
		return "", ErrNoOutputURL
	case []string:
		for _, item := range v {
			if item != "" {
				return item, nil
			}
		}
		return "", ErrNoOutputURL
	case map[string]any:
		for _, key := range urlKeys {
			if inner, ok := v[key]; ok {
				if url, err := ResolveOutputURL(inner); err == nil {
					return url, nil
				}
			}
		}
		return "", ErrNoOutputURL
	default:
		return "", ErrNoOutputURL
	}
}
