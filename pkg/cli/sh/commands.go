package sh

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/mculink/pkg/link"
	"github.com/robotalks/mculink/pkg/transport"
)

// ReadResult is the JSON output of read.
type ReadResult struct {
	Address byte   `json:"address"`
	Data    []byte `json:"data"`
}

func run(fn func(s *Shell, args []string) (string, error)) func(c *ishell.Context) {
	return MustBeConnected(func(c *ishell.Context) {
		out, err := fn(ShellFrom(c), c.Args)
		if err != nil {
			c.Err(err)
			return
		}
		if out != "" {
			c.Println(out)
		}
	})
}

func (s *Shell) ok() string {
	if s.OutputJSON {
		return `{"ok":true}`
	}
	return "OK"
}

// ExecWrite handles "write ADDR HEX...".
func (s *Shell) ExecWrite(args []string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("usage: write ADDR HEX...")
	}
	address, err := ParseByte(args[0])
	if err != nil {
		return "", err
	}
	data, err := ParseHex(args[1:]...)
	if err != nil {
		return "", err
	}
	if err := s.Link.Client.Write(context.Background(), address, data); err != nil {
		return "", err
	}
	return s.ok(), nil
}

// ExecRead handles "read ADDR N".
func (s *Shell) ExecRead(args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("usage: read ADDR N")
	}
	address, err := ParseByte(args[0])
	if err != nil {
		return "", err
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return "", fmt.Errorf("invalid count %q", args[1])
	}
	data, err := s.Link.Client.Read(context.Background(), address, n)
	if err != nil {
		return "", err
	}
	if s.OutputJSON {
		out, err := json.Marshal(&ReadResult{Address: address, Data: data})
		return string(out), err
	}
	return fmt.Sprintf("0x%02X: %s", address, FormatHex(data)), nil
}

// ExecRepeat handles "repeat COUNT INTERVAL write|read ARGS...".
func (s *Shell) ExecRepeat(args []string) (string, error) {
	if len(args) < 3 {
		return "", fmt.Errorf("usage: repeat COUNT INTERVAL write|read ARGS...")
	}
	count, err := strconv.Atoi(args[0])
	if err != nil || count <= 0 {
		return "", fmt.Errorf("invalid count %q", args[0])
	}
	interval, err := time.ParseDuration(args[1])
	if err != nil {
		return "", err
	}
	var exec func([]string) (string, error)
	switch args[2] {
	case "write", "w":
		exec = s.ExecWrite
	case "read", "r":
		exec = s.ExecRead
	default:
		return "", fmt.Errorf("unsupported command %q", args[2])
	}
	outs := make([]string, 0, count)
	for i := 0; i < count; i++ {
		if i > 0 {
			time.Sleep(interval)
		}
		out, err := exec(args[3:])
		if err != nil {
			return strings.Join(outs, "\n"), fmt.Errorf("#%d: %w", i+1, err)
		}
		outs = append(outs, out)
	}
	return strings.Join(outs, "\n"), nil
}

// ExecStats handles "stats".
func (s *Shell) ExecStats([]string) (string, error) {
	stats := s.Link.Client.Session().Stats()
	if s.OutputJSON {
		out, err := json.Marshal(&stats)
		return string(out), err
	}
	return FormatStats(stats), nil
}

// FormatStats prints Stats one counter per line.
func FormatStats(stats link.Stats) string {
	return fmt.Sprintf(`frames:          %d
acks:            %d
nacks:           %d
checksum errors: %d
length errors:   %d
unknown opcodes: %d
store errors:    %d
timeouts:        %d
overruns:        %d
transmit errors: %d`,
		stats.Frames, stats.Acks, stats.Nacks,
		stats.ChecksumErrors, stats.LengthErrors, stats.UnknownOpcodes,
		stats.StoreErrors, stats.Timeouts, stats.Overruns, stats.TransmitErrors)
}

var (
	// ConnectCmd opens a link.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[PORT]",
		Func: func(c *ishell.Context) {
			var port string
			if len(c.Args) > 0 {
				port = c.Args[0]
			}
			if err := ShellFrom(c).Connect(port); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd closes current link.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// PortsCmd lists serial devices.
	PortsCmd = ishell.Cmd{
		Name:    "ports",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ports, err := transport.SerialPorts()
			if err != nil {
				c.Err(err)
				return
			}
			if len(ports) == 0 {
				c.Println("No serial ports found")
				return
			}
			for _, port := range ports {
				c.Println(port)
			}
		},
	}

	// WriteCmd writes peer memory.
	WriteCmd = ishell.Cmd{
		Name:    "write",
		Aliases: []string{"w"},
		Help:    "ADDR HEX...",
		Func:    run((*Shell).ExecWrite),
	}

	// ReadCmd reads peer memory.
	ReadCmd = ishell.Cmd{
		Name:    "read",
		Aliases: []string{"r"},
		Help:    "ADDR N",
		Func:    run((*Shell).ExecRead),
	}

	// RepeatCmd repeats write or read.
	RepeatCmd = ishell.Cmd{
		Name: "repeat",
		Help: "COUNT INTERVAL write|read ARGS...",
		Func: run((*Shell).ExecRepeat),
	}

	// StatsCmd prints link counters.
	StatsCmd = ishell.Cmd{
		Name: "stats",
		Help: "",
		Func: run((*Shell).ExecStats),
	}
)
