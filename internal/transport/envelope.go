package transport

// Envelope is the body shape of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

func OKMessage(data any, msg string) Envelope {
	return Envelope{Success: true, Data: data, Message: msg}
}

func List[T any](items []T) Envelope {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	return Envelope{Success: true, Data: items, Count: &n}
}

func Fail(msg string) Envelope {
	return Envelope{Success: false, Message: msg}
}
