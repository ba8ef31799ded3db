package raft_messages

type RequestVoteRequest struct {
	// Id of candidate requesting vote
	FromId uint
	// Candidate's term
	Term uint
	// Index of candidate's last log entry
	LastLogIndex uint
	// Term of candidate's last log entry
	LastLogTerm uint
}

type RequestVoteResponse struct {
	FromId uint
	// Current term of the voter, for candidate to update itself
	Term        uint
	VoteGranted bool
}

func (RequestVoteRequest) MessageType() MessageType {
	return RequestVoteRequestType
}

func (RequestVoteRequest) MessageTypeString() string {
	return "RequestVoteRequest"
}

func (request RequestVoteRequest) SenderId() uint {
	return request.FromId
}

func (request RequestVoteRequest) MessageTerm() uint {
	return request.Term
}

func (RequestVoteResponse) MessageType() MessageType {
	return RequestVoteResponseType
}

func (RequestVoteResponse) MessageTypeString() string {
	return "RequestVoteResponse"
}

func (response RequestVoteResponse) SenderId() uint {
	return response.FromId
}

func (response RequestVoteResponse) MessageTerm() uint {
	return response.Term
}
