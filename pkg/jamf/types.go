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

import (
	"net/http"
	"time"
)

// Config holds the connection settings for a Jamf Pro tenant.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string

	// Timeout applies to each HTTP request.
	Timeout time.Duration
	// RequestsPerSecond and Burst shape all outgoing requests.
	RequestsPerSecond float64
	Burst             int
	// MaxRetries is the number of extra attempts for transient failures.
	MaxRetries    int
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
	PageSize      int

	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type inventoryPage struct {
	TotalCount int                `json:"totalCount"`
	Results    []inventoryComputer `json:"results"`
}

type inventoryComputer struct {
	ID               string            `json:"id"`
	General          generalSection    `json:"general"`
	GroupMemberships []groupMembership `json:"groupMemberships"`
}

type generalSection struct {
	Name                         string `json:"name"`
	SerialNumber                 string `json:"serialNumber"`
	ModelIdentifier              string `json:"modelIdentifier"`
	OperatingSystemVersion       string `json:"operatingSystemVersion"`
	LastContactTime              string `json:"lastContactTime"`
	LastInventoryUpdateTimestamp string `json:"lastInventoryUpdateTimestamp"`
}

type groupMembership struct {
	GroupID    string `json:"groupId"`
	GroupName  string `json:"groupName"`
	SmartGroup bool   `json:"smartGroup"`
}

type managementData struct {
	Policies []policyStatus `json:"policies"`
}

type policyStatus struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Failed bool   `json:"failed"`
}

type commandsPage struct {
	TotalCount int          `json:"totalCount"`
	Results    []mdmCommand `json:"results"`
}

type mdmCommand struct {
	UUID       string `json:"uuid"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	DateIssued string `json:"dateIssued"`
}

// MDM command states reported by Jamf Pro.
const (
	commandFailed     = "Failed"
	commandPending    = "Pending"
	commandInProgress = "InProgress"
)
