package model

import "time"

// User is an operator account allowed to manage recommendation
// packages.  Passwords are stored only as bcrypt hashes; the plain
// value never touches the database.
//
// Fields:
//  ID           - primary key identifier.
//  Email        - unique login email, stored lowercase.
//  PasswordHash - bcrypt hash of the password.
//  CreatedAt    - creation timestamp.
//  UpdatedAt    - last update timestamp.
type User struct {
    ID           uint64    // users.id
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}
