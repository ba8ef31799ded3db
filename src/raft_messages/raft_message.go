package raft_messages

type MessageType int

const (
	AppendEntryRequestType MessageType = iota
	AppendEntryResponseType
	RequestVoteRequestType
	RequestVoteResponseType
)

type Message interface {
	// MessageType returns type of given message
	MessageType() MessageType
	// MessageTypeString returns type of given message as string
	MessageTypeString() string
	// SenderId returns id of the replica which sent given message
	SenderId() uint
	// MessageTerm returns term of message sender
	MessageTerm() uint
}
