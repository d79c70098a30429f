// Package sh provides an interactive shell issuing requests on a link.
package sh

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/mculink/pkg/env"
	fx "github.com/robotalks/mculink/pkg/framework"
	"github.com/robotalks/mculink/pkg/link"
	"github.com/robotalks/mculink/pkg/transport"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	Shell  *ishell.Shell
	Config *env.Config
	Link   *LinkLoop
}

// LinkLoop is a running loop with an open link.
type LinkLoop struct {
	Ctx    context.Context
	Cancel func()
	Desc   string
	Conn   transport.Conn
	Client *link.Client
	Loop   *fx.Loop
	done   chan struct{}
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	evalOnly   bool
	outputJSON bool

	commands = []*ishell.Cmd{
		&ConnectCmd,
		&DisconnectCmd,
		&PortsCmd,
		&WriteCmd,
		&ReadCmd,
		&RepeatCmd,
		&StatsCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Link == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// Connect opens the link at port, or the configured one if port is empty.
func (s *Shell) Connect(port string) error {
	conf := *s.Config
	if port != "" {
		conf.Port = port
	}
	conn, desc, err := conf.OpenLink()
	if err != nil {
		return err
	}
	s.Attach(conn, desc)
	return nil
}

// Attach starts a client loop on an open link, replacing the current one.
func (s *Shell) Attach(conn transport.Conn, desc string) *LinkLoop {
	ll := &LinkLoop{
		Desc:   desc,
		Conn:   conn,
		Client: link.NewClient(conn, s.Config.SessionOptions()...),
		Loop:   s.Config.NewLoop(),
		done:   make(chan struct{}),
	}
	ll.Client.Timeout = s.Config.ReplyTimeout
	ll.Loop.Add(link.NewPort(conn, ll.Client.Session()))
	ll.Ctx, ll.Cancel = context.WithCancel(context.Background())
	s.Disconnect()
	s.Link = ll
	go func() {
		defer close(ll.done)
		if err := ll.Loop.Run(ll.Ctx); err != nil && !errors.Is(err, context.Canceled) {
			glog.Errorf("link %s stopped: %v", desc, err)
		}
	}()
	s.setPrompt(fmt.Sprintf("[%s] > ", desc))
	return ll
}

// Disconnect closes the current link.
func (s *Shell) Disconnect() {
	if ll := s.Link; ll != nil {
		s.Link = nil
		ll.Cancel()
		<-ll.done
		s.setPrompt(unconnectedPrompt)
	}
}

func (s *Shell) setPrompt(prompt string) {
	if s.Shell != nil {
		s.Shell.SetPrompt(prompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect && s.Config.Port != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.Port)
		}
		if err := s.Connect(""); err != nil {
			if !s.Interactive {
				log.Fatalf("connect %q failed: %v", s.Config.Port, err)
			}
			s.Shell.Printf("connect %q failed: %v\n", s.Config.Port, err)
		}
	}
	defer s.Disconnect()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// Main is a helper to provide a single call in main.
func Main() {
	env.SetupFlags()
	flag.Parse()
	New(env.NewConfig().MustValidate()).WithAutoConnect(true).Run(flag.Args()...)
}
