package luart

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// ToLua converts a Go value to a Lua value. Unhandled types become userdata.
func ToLua(L *lua.LState, v interface{}) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []interface{}:
		t := L.NewTable()
		for i, item := range val {
			t.RawSetInt(i+1, ToLua(L, item))
		}
		return t
	case map[string]interface{}:
		t := L.NewTable()
		for k, item := range val {
			t.RawSetString(k, ToLua(L, item))
		}
		return t
	case lua.LValue:
		return val
	default:
		ud := L.NewUserData()
		ud.Value = v
		return ud
	}
}

// ToGo converts a Lua value to a Go value. Tables with contiguous integer
// keys become slices, other tables become maps. Functions convert to nil.
func ToGo(lv lua.LValue) interface{} {
	return toGo(lv, make(map[*lua.LTable]bool))
}

func toGo(lv lua.LValue, visited map[*lua.LTable]bool) interface{} {
	switch v := lv.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil // break cycles
		}
		visited[v] = true
		return tableToGo(v, visited)
	case *lua.LUserData:
		return v.Value
	default:
		return nil
	}
}

func tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) interface{} {
	n := t.Len()
	if n > 0 {
		count := 0
		t.ForEach(func(_, _ lua.LValue) { count++ })
		if count == n {
			arr := make([]interface{}, n)
			for i := 1; i <= n; i++ {
				arr[i-1] = toGo(t.RawGetInt(i), visited)
			}
			return arr
		}
	}

	m := make(map[string]interface{})
	t.ForEach(func(k, v lua.LValue) {
		var key string
		switch kv := k.(type) {
		case lua.LString:
			key = string(kv)
		case lua.LNumber:
			key = fmt.Sprintf("%v", float64(kv))
		default:
			key = k.String()
		}
		m[key] = toGo(v, visited)
	})
	return m
}
