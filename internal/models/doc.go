// Package models defines the core domain models for the trip expense
// backend.
//
// # Models
//
//   - User: registered account, identified by a unique email
//   - Group: a trip group that owns a member roster and expenses
//   - Expense: a spend recorded against a group, optionally split
//   - ExpenseParticipant: one member's allocated share of an expense
//   - Event: a dated entry on the group calendar
//   - Receipt: an image blob attached to an expense
//
// # Design principles
//
//  1. Relationships are plain ID strings, never pointers, to avoid
//     circular references and hidden lazy loading. Anything a response
//     needs is fetched explicitly through the storage interfaces.
//  2. Money fields are decimal.Decimal. All share arithmetic happens on
//     exact decimals; binary floats never touch an amount.
//  3. IDs are UUID strings assigned by the store on insert; CreatedAt
//     fields are Unix timestamps, also filled in by the store.
package models
