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
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

type ErrorType int32

const (
	SystemError ErrorType = 0
	InputError  ErrorType = 1
)

var ErrorTypeName = map[ErrorType]string{
	SystemError: "system_error",
	InputError:  "input_error",
}

func (err ErrorType) String() string {
	return ErrorTypeName[err]
}

// Define leaf errors here,
// WARN: take care to add new error,
// check whether you can use the errors below before adding a new one.
// Name: Err + related prefix + error name
var (
	// Codec related
	ErrMalformedEncoding  = newSerdeError("malformed encoding", 100, InputError)
	ErrStructuralMismatch = newSerdeError("structural mismatch", 101, InputError)
	ErrMissingTypeContext = newSerdeError("missing type context", 102, SystemError)
	ErrValueOutOfRange    = newSerdeError("value out of range", 103, InputError)
	ErrUnregisteredType   = newSerdeError("unregistered type", 104, SystemError)

	// Format related
	ErrUnsupportedFormat = newSerdeError("unsupported format", 200, InputError)
	ErrFormatFailed      = newSerdeError("format failed", 201, InputError)

	// Mapping related
	ErrUnknownField    = newSerdeError("unknown field", 300, InputError)
	ErrUnsupportedType = newSerdeError("unsupported type", 301, SystemError)

	// Parameter related
	ErrParameterInvalid = newSerdeError("invalid parameter", 1100, InputError)
	ErrParameterMissing = newSerdeError("missing parameter", 1101, InputError)

	// Do NOT export this,
	// never allow programmer using this, keep only for converting unknown error to serdeError
	errUnexpected = newSerdeError("unexpected error", (1<<16)-1, SystemError)
)

type serdeError struct {
	msg     string
	detail  string
	errCode int32
	errType ErrorType
}

func newSerdeError(msg string, code int32, etype ErrorType) serdeError {
	return serdeError{
		msg:     msg,
		detail:  msg,
		errCode: code,
		errType: etype,
	}
}

func (e serdeError) code() int32 {
	return e.errCode
}

func (e serdeError) Error() string {
	return e.msg
}

func (e serdeError) Detail() string {
	return e.detail
}

func (e serdeError) Is(err error) bool {
	cause := errors.Cause(err)
	if cause, ok := cause.(serdeError); ok {
		return e.errCode == cause.errCode
	}
	return false
}

type multiErrors struct {
	errs []error
}

func (e multiErrors) Unwrap() error {
	if len(e.errs) <= 1 {
		return nil
	}
	// To make merr work for multi errors,
	// we need cause of multi errors, which defined as the last error
	if len(e.errs) == 2 {
		return e.errs[1]
	}

	return multiErrors{
		errs: e.errs[1:],
	}
}

func (e multiErrors) Error() string {
	final := e.errs[0]
	for i := 1; i < len(e.errs); i++ {
		final = errors.Wrap(e.errs[i], final.Error())
	}
	return final.Error()
}

func (e multiErrors) Is(err error) bool {
	for _, item := range e.errs {
		if errors.Is(item, err) {
			return true
		}
	}
	return false
}

func Combine(errs ...error) error {
	errs = lo.Filter(errs, func(err error, _ int) bool { return err != nil })
	if len(errs) == 0 {
		return nil
	}
	return multiErrors{
		errs,
	}
}
