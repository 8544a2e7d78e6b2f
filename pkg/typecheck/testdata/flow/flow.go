package flow

type Definition struct{}

type Context interface {
	RunID() string
}

func Env(name string) string { return name }

func Await[T any](v T) T { return v }
