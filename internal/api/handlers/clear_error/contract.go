package clear_error

type RequestService interface {
	ClearError()
}
