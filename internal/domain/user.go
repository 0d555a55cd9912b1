package domain

import "github.com/lib/pq"

type (
	Email  = string
	UserId = int64

	// Friends is stored as a postgres bigint[] column.
	Friends = pq.Int64Array
)

type User struct {
	Id       UserId  `json:"id"`
	Email    Email   `json:"email"`
	PassHash string  `json:"-"`
	Friends  Friends `json:"friends"`
}

type Credentials struct {
	Email    Email
	Password string
}
