// Package dedup groups copies of the same event and elects one survivor per group.
//
// Two strategies exist. The submission strategy groups records created from the
// same user submission. The content strategy groups records whose folded title,
// event day and city are equal, which catches the same event scraped twice under
// different ids. Strategies run in the order given to New; each one only sees the
// survivors of the previous one.
//
// The survivor of a group is the record with the latest UpdatedAt (CreatedAt
// when UpdatedAt is unset). On a tie the record encountered first survives.
package dedup
