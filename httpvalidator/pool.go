package httpvalidator

import "sync"

// envelopeCap is the number of top-level envelope keys.
const envelopeCap = 5

var envelopePool = sync.Pool{
	New: func() any {
		return make(map[string]any, envelopeCap)
	},
}

// getEnvelope builds the object the compiled schemas validate:
// {query, headers, params, cookies, body}. Signed cookies override plain
// cookies of the same name, and body is omitted when the request has none.
// Values are converted to JSON-compatible types.
func getEnvelope(req *Request) map[string]any {
	env := envelopePool.Get().(map[string]any)
	clear(env)

	cookies := make(map[string]any, len(req.Cookies)+len(req.SignedCookies))
	for k, v := range req.Cookies {
		cookies[k] = jsonValue(v)
	}
	for k, v := range req.SignedCookies {
		cookies[k] = jsonValue(v)
	}

	env[envQuery] = jsonObject(req.Query)
	env[envHeaders] = jsonObject(req.Headers)
	env[envParams] = jsonObject(req.Params)
	env[envCookies] = cookies
	if req.Body != nil {
		env[envBody] = jsonValue(req.Body)
	}
	return env
}

// putEnvelope returns an envelope to the pool.
func putEnvelope(env map[string]any) {
	if env == nil {
		return
	}
	clear(env)
	envelopePool.Put(env)
}

func jsonObject(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = jsonValue(v)
	}
	return out
}

// jsonValue converts common Go shapes the validator cannot walk into their
// JSON equivalents. Other values are returned unchanged.
func jsonValue(v any) any {
	switch t := v.(type) {
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, s := range t {
			out[k] = s
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = jsonValue(item)
		}
		return out
	case map[string]any:
		return jsonObject(t)
	default:
		return v
	}
}
