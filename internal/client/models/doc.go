// Package models defines client-side data models used by the Portal CLI:
// the session, spreadsheets and their data pages, users, access levels,
// pending form drafts and the single user-facing message slot.
package models
