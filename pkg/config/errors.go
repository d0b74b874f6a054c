/*-
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

package config

import "errors"

var (
	errInvalidDuration     = errors.New("invalid duration")
	errUnknownCacheBackend = errors.New("unknown cache backend")
	errMissingRedisAddr    = errors.New("cache.redis.addr is required for the redis backend")
	errMissingJamfURL      = errors.New("jamf.url is required")
	errMissingJamfCreds    = errors.New("jamf.client_id and jamf.client_secret are required")
	errInvalidLogFormat    = errors.New("logging.format must be json or console")
	errNegativeValue       = errors.New("must not be negative")
)
