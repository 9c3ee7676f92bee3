package repository

import "errors"

// This file defines custom errors specific to the repository layer.
// This allows the repository to communicate outcomes in a database-agnostic way.

// ErrNotFound is returned when a conversation does not exist or does not
// belong to the requesting owner. The two cases are indistinguishable.
//
// The service layer checks for this error and translates it into the
// domain-level `app_errors.ErrNotFound`, which abstracts away driver errors
// such as `sql.ErrNoRows`, `redis.Nil` or `mongo.ErrNoDocuments`.
var ErrNotFound = errors.New("repository: not found")

// ErrOwnerRequired is returned when a write is attempted without an owner.
var ErrOwnerRequired = errors.New("repository: owner id is required")
