package view

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Title capitalises the first letter of each word. A Caser is stateful, so
// one is built per call.
func Title(s string) string {
	return cases.Title(language.English).String(s)
}

// Created is the notification after creating entity, e.g. "Role Created".
func Created(entity string) string {
	return Title(entity) + " Created"
}

// Updated is the notification after editing field, e.g. "Role name Updated".
func Updated(entity, field string) string {
	return Title(entity) + " " + field + " Updated"
}

// Deleted is the notification after deleting entity.
func Deleted(entity string) string {
	return Title(entity) + " Deleted"
}

// Mapped is the notification after linking entity, e.g. "Permission Mapped".
func Mapped(entity string) string {
	return Title(entity) + " Mapped"
}

// MappedUpdated is the notification after swapping a link.
func MappedUpdated(entity string) string {
	return Mapped(entity) + " Updated"
}

// MappedDeleted is the notification after removing a link.
func MappedDeleted(entity string) string {
	return Mapped(entity) + " Deleted"
}
