package errors

import stderrors "errors"

// Is 判断 err 链中是否包含指定的业务错误
func Is(err error, def Definition) bool {
	return stderrors.Is(err, def)
}

// From 从 err 链中取出第一个业务错误
func From(err error) (Definition, bool) {
	var def Definition
	if stderrors.As(err, &def) {
		return def, true
	}
	return Definition{}, false
}
