package handler

type ContextKey string

var (
	EmployeeCtx ContextKey = "employee"
	ProjectCtx  ContextKey = "project"
	TaskCtx     ContextKey = "task"
)
