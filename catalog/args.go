package catalog

// Tool arguments arrive as decoded JSON, so numbers are float64 and every
// value needs a type assertion. Missing keys and wrong types both read as
// absent.

func stringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func floatArg(args map[string]any, key string) (float64, bool) {
	v, ok := args[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func intArg(args map[string]any, key string) (int32, bool) {
	f, ok := floatArg(args, key)
	if !ok {
		return 0, false
	}
	return int32(f), true
}
