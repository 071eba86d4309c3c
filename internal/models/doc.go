package models

// Helpers for reading loosely typed document fields. The Mongo backend
// decodes numbers as int32/int64, the Postgres JSONB backend as float64,
// so every numeric read goes through docInt/docInt64.

func docString(doc map[string]interface{}, key string) string {
	if v, ok := doc[key].(string); ok {
		return v
	}
	return ""
}

func docBool(doc map[string]interface{}, key string) bool {
	if v, ok := doc[key].(bool); ok {
		return v
	}
	return false
}

func docInt(doc map[string]interface{}, key string) int {
	return int(docInt64(doc, key))
}

func docInt64(doc map[string]interface{}, key string) int64 {
	switch v := doc[key].(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	case float32:
		return int64(v)
	default:
		return 0
	}
}

func docFloat(doc map[string]interface{}, key string) float64 {
	switch v := doc[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func docMap(doc map[string]interface{}, key string) map[string]interface{} {
	if v, ok := doc[key].(map[string]interface{}); ok {
		return v
	}
	return nil
}

func docSlice(doc map[string]interface{}, key string) []interface{} {
	if v, ok := doc[key].([]interface{}); ok {
		return v
	}
	return nil
}
