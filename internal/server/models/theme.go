package models

type Theme struct {
	ID          int64
	Title       string
	Description string
}
