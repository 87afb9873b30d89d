package cf

import "fmt"

// MapIToMapS recursively converts the map[interface{}]interface{} trees produced by
// yaml unmarshaling into map[string]interface{} trees.
func MapIToMapS(in map[interface{}]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for k, v := range in {
		result[fmt.Sprintf("%v", k)] = cleanValue(v)
	}
	return result
}

func cleanValue(v interface{}) interface{} {
	switch v := v.(type) {
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, e := range v {
			result[i] = cleanValue(e)
		}
		return result

	case map[interface{}]interface{}:
		return MapIToMapS(v)

	default:
		return v
	}
}
