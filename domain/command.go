package domain

// Command is the closed set of inbound events a connection can produce.
// Every command carries the identity of the connection that sent it.
type Command interface {
	ConnID() string
}

type JoinCommand struct {
	Conn     string
	Room     RoomID `validate:"required"`
	UserName string `validate:"required,max=64"`
}

func (c JoinCommand) ConnID() string { return c.Conn }

type CodeChangeCommand struct {
	Conn string
	Room RoomID `validate:"required"`
	Code string
}

func (c CodeChangeCommand) ConnID() string { return c.Conn }

type TypingCommand struct {
	Conn     string
	Room     RoomID `validate:"required"`
	UserName string `validate:"required,max=64"`
}

func (c TypingCommand) ConnID() string { return c.Conn }

type LanguageChangeCommand struct {
	Conn     string
	Room     RoomID `validate:"required"`
	Language string `validate:"required,max=32"`
}

func (c LanguageChangeCommand) ConnID() string { return c.Conn }

type CompileCommand struct {
	Conn     string
	Room     RoomID `validate:"required"`
	Code     string
	Language string `validate:"required,max=32"`
}

func (c CompileCommand) ConnID() string { return c.Conn }

type LeaveCommand struct {
	Conn string
}

func (c LeaveCommand) ConnID() string { return c.Conn }

type DisconnectCommand struct {
	Conn string
}

func (c DisconnectCommand) ConnID() string { return c.Conn }
