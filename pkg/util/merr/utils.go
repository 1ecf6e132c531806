// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package merr

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Code 返回给定错误对应的错误码。
func Code(err error) int32 {
	if err == nil {
		return 0
	}

	cause := errors.Cause(err)
	if specificErr, ok := cause.(serdeError); ok {
		return specificErr.code()
	}
	return errUnexpected.code()
}

// GetErrorType 返回错误的分类；非 merr 错误一律视为系统错误。
func GetErrorType(err error) ErrorType {
	var serr serdeError
	if errors.As(err, &serr) {
		return serr.errType
	}
	return SystemError
}

// IsInputError 判断错误是否由调用方输入引起（编码损坏、结构不符等）。
func IsInputError(err error) bool {
	return err != nil && GetErrorType(err) == InputError
}

// Codec 相关错误封装。
func WrapErrMalformedEncoding(tag string, reason string, msg ...string) error {
	err := wrapFieldsWithDesc(ErrMalformedEncoding, reason, value("tag", tag))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

// WrapErrStructuralMismatch 记录期望的 token 与实际读到的 token。
func WrapErrStructuralMismatch(expected, actual any, msg ...string) error {
	err := wrapFields(ErrStructuralMismatch,
		value("expected", expected),
		value("actual", actual),
	)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrMissingTypeContext(tag string, msg ...string) error {
	err := wrapFields(ErrMissingTypeContext, value("tag", tag))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrValueOutOfRange(tag string, actual any, msg ...string) error {
	err := wrapFields(ErrValueOutOfRange,
		value("tag", tag),
		value("actual", actual),
	)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrUnregisteredType(typeName string, msg ...string) error {
	err := wrapFields(ErrUnregisteredType, value("type", typeName))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

// Format 相关错误封装。
func WrapErrUnsupportedFormat(contentType string, msg ...string) error {
	err := wrapFields(ErrUnsupportedFormat, value("contentType", contentType))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrFormatFailed(contentType string, err error) error {
	if err == nil {
		return nil
	}
	return wrapFieldsWithDesc(ErrFormatFailed, err.Error(), value("contentType", contentType))
}

// Mapping 相关错误封装。
func WrapErrUnknownField(name string, msg ...string) error {
	err := wrapFields(ErrUnknownField, value("field", name))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrUnsupportedType(typeName string, msg ...string) error {
	err := wrapFields(ErrUnsupportedType, value("type", typeName))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

// Parameter related
func WrapErrParameterInvalid[T any](expected, actual T, msg ...string) error {
	err := wrapFields(ErrParameterInvalid,
		value("expected", expected),
		value("actual", actual),
	)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrParameterInvalidMsg(fmt string, args ...any) error {
	return errors.Wrapf(ErrParameterInvalid, fmt, args...)
}

func WrapErrParameterMissing[T any](param T, msg ...string) error {
	err := wrapFields(ErrParameterMissing,
		value("missing_param", param),
	)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func wrapFields(err serdeError, fields ...errorField) error {
	for i := range fields {
		err.msg += fmt.Sprintf("[%s]", fields[i].String())
	}
	err.detail = err.msg
	return err
}

func wrapFieldsWithDesc(err serdeError, desc string, fields ...errorField) error {
	for i := range fields {
		err.msg += fmt.Sprintf("[%s]", fields[i].String())
	}
	err.msg += ": " + desc
	err.detail = err.msg
	return err
}

type errorField interface {
	String() string
}

type valueField struct {
	name  string
	value any
}

func value(name string, value any) valueField {
	return valueField{
		name,
		value,
	}
}

func (f valueField) String() string {
	return fmt.Sprintf("%s=%v", f.name, f.value)
}
