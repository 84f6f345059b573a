// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package queue defines the wire contract of the conductor's message
// queue: the envelope shapes a conductor (a separate process, out of
// scope here) exchanges with this operator's CoreDB resources. No queue
// is implemented or polled here — only the types needed for the
// operator-facing side of the contract to compile and round-trip.
package queue

import "encoding/json"

// EventType is the action a conductor message requests.
type EventType string

const (
	EventCreate  EventType = "Create"
	EventUpdate  EventType = "Update"
	EventDelete  EventType = "Delete"
	EventRestart EventType = "Restart"
	EventStop    EventType = "Stop"
	EventStart   EventType = "Start"
)

// ReplyType is the past-tense event a reply envelope carries back.
type ReplyType string

const (
	ReplyCreated       ReplyType = "Created"
	ReplyUpdated       ReplyType = "Updated"
	ReplyDeleted       ReplyType = "Deleted"
	ReplyRestarted     ReplyType = "Restarted"
	ReplyStopComplete  ReplyType = "StopComplete"
	ReplyStarted       ReplyType = "Started"
	ReplyError         ReplyType = "Error"
)

// Message is one conductor-enqueued request against a single instance.
type Message struct {
	DataPlaneID      string          `json:"data_plane_id"`
	EventID          string          `json:"event_id"`
	EventType        EventType       `json:"event_type"`
	DBName           string          `json:"dbname"`
	OrganizationName string          `json:"organization_name"`
	Spec             json.RawMessage `json:"spec,omitempty"`
}

// Reply is the envelope sent back once a Message has been acted on.
type Reply struct {
	DataPlaneID      string    `json:"data_plane_id"`
	EventID          string    `json:"event_id"`
	EventType        ReplyType `json:"event_type"`
	DBName           string    `json:"dbname"`
	OrganizationName string    `json:"organization_name"`
	Connection       string    `json:"connection,omitempty"`
	ErrorMessage     string    `json:"error_message,omitempty"`
}

// Namespace computes the per-tenant namespace a conductor wraps a
// create/update in: "org-{organization}-inst-{dbname}".
func Namespace(organizationName, dbName string) string {
	return "org-" + organizationName + "-inst-" + dbName
}
