package templating

// repeat returns a slice of integers from 0 to count-1.
func repeat(count int) []int {
	if count < 0 {
		return []int{}
	}
	s := make([]int, count)
	for i := 0; i < count; i++ {
		s[i] = i
	}
	return s
}

// list returns a slice containing all the arguments passed to it.
func list(args ...any) []any {
	return args
}

// BaseFuncs returns the helpers available to every template, before any
// caller-supplied functions are merged in. Renders must be reproducible, so
// nothing here is random or time dependent.
func BaseFuncs() FuncMap {
	return FuncMap{
		"add":     add,
		"sub":     sub,
		"mult":    mult,
		"div":     div,
		"mod":     mod,
		"max":     maxOf,
		"min":     minOf,
		"neg":     neg,
		"num":     num,
		"isSet":   isSet,
		"default": orDefault,
		"repeat":  repeat,
		"list":    list,
	}
}
