// Package models defines the core domain models for automation dispatch.
package models

// EventSource tags the entity type a trigger subscribes to.
type EventSource string

const (
	EventSourceDataset EventSource = "dataset"
	EventSourcePrompt  EventSource = "prompt"
)

// ChangeAction is the kind of mutation a change event describes.
type ChangeAction string

const (
	ChangeActionCreated ChangeAction = "created"
	ChangeActionUpdated ChangeAction = "updated"
	ChangeActionDeleted ChangeAction = "deleted"
)

// ActionColumn is the synthetic filter column carrying the change action
// kind. It is merged into the evaluation data next to the entity snapshot so
// triggers can filter on created/updated/deleted.
const ActionColumn = "action"
