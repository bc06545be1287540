package rest

type SubmitWorkResponse struct {
	Handle string `json:"handle"`
	From   int64  `json:"from"`
	To     int64  `json:"to"`
	Links  Links  `json:"links"`
}

type Links struct {
	Self string `json:"self"`
}

type ProbeWorkResponse struct {
	Handle string `json:"handle"`
	State  string `json:"state"`
}
