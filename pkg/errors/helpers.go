// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import (
	"errors"
)

// UserMessage returns the message to show a caller for err. The first
// UserVisibleError in the chain wins; otherwise err.Error() is used.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var uv UserVisibleError
	if errors.As(err, &uv) && uv.IsUserVisible() {
		return uv.UserMessage()
	}
	return err.Error()
}

// Type returns the ErrorType of the first classified error in the chain,
// or "internal" when none is present. Used as a metrics label.
func Type(err error) string {
	if err == nil {
		return ""
	}
	var ec ErrorClassifier
	if errors.As(err, &ec) {
		return ec.ErrorType()
	}
	return "internal"
}

// Retryable reports whether the first classified error in the chain says
// repeating the operation could succeed.
func Retryable(err error) bool {
	var ec ErrorClassifier
	if errors.As(err, &ec) {
		return ec.IsRetryable()
	}
	return false
}
