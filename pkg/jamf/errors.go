/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package jamf

import "errors"

var (
	errMissingBaseURL     = errors.New("jamf base url is required")
	errMissingCredentials = errors.New("jamf client id and secret are required")
	errInvalidBaseURL     = errors.New("invalid jamf base url")
	errTokenRejected      = errors.New("token request rejected")
	errEmptyToken         = errors.New("token response has no access_token")
	errUnexpectedStatus   = errors.New("unexpected status")
	errDecodeResponse     = errors.New("failed to decode response")
	errBuildRequest       = errors.New("failed to build request")
)
