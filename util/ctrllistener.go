package util

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ctrlListeners = make(map[string]*CtrlListener)
var ctrlMutex sync.Mutex

// CtrlListener accepts connections on a per-process unix socket and dispatches
// newline-terminated keyword commands to registered callbacks. One listener exists per
// (root, id) pair; repeated Get calls return the same instance.
//
type CtrlListener struct {
	listener  net.Listener
	callbacks map[string][]func(string) error
	running   bool
}

func GetCtrlListener(root, id string) (cl *CtrlListener, err error) {
	ctrlMutex.Lock()
	defer ctrlMutex.Unlock()

	cl, found := ctrlListeners[root+id]
	if found {
		return cl, nil
	}

	cl = &CtrlListener{callbacks: make(map[string][]func(string) error)}
	address := filepath.Join(root, fmt.Sprintf("%s.%d.sock", id, os.Getpid()))
	unixAddress, err := net.ResolveUnixAddr("unix", address)
	if err != nil {
		return nil, errors.Wrap(err, "error resolving unix address")
	}
	cl.listener, err = net.ListenUnix("unix", unixAddress)
	if err != nil {
		return nil, errors.Wrap(err, "error listening")
	}
	ctrlListeners[root+id] = cl
	return cl, nil
}

// AddCallback registers f for the given keyword. The full command line is passed to the
// callback, allowing arguments after the keyword.
func (self *CtrlListener) AddCallback(keyword string, f func(string) error) {
	self.callbacks[keyword] = append(self.callbacks[keyword], f)
}

func (self *CtrlListener) Start() {
	ctrlMutex.Lock()
	defer ctrlMutex.Unlock()

	if !self.running {
		self.running = true
		go self.run()
	}
}

func (self *CtrlListener) run() {
	logrus.Infof("[%s] started", self.listener.Addr())
	defer logrus.Infof("[%s] exited", self.listener.Addr())

	for {
		conn, err := self.listener.Accept()
		if err == nil {
			go self.handle(conn)
		} else if err == io.EOF {
			return
		} else {
			logrus.Errorf("error accepting ctrl connection (%v)", err)
		}
	}
}

func (self *CtrlListener) handle(conn net.Conn) {
	defer func() { _ = conn.Close() }()

	r := bufio.NewReader(conn)
	for {
		line, err := r.ReadString('\n')
		if err == io.EOF {
			return
		} else if err != nil {
			logrus.Errorf("error reading (%v)", err)
			return
		}

		line = strings.TrimSpace(line)
		tokens := strings.Split(line, " ")
		if len(tokens) < 1 {
			continue
		}
		fs, found := self.callbacks[tokens[0]]
		if !found {
			logrus.Errorf("no callback for [%s]", line)
			if _, err := conn.Write([]byte("syntax error?\n")); err != nil {
				logrus.Errorf("error responding (%v)", err)
			}
			continue
		}

		var fErr error
		for _, f := range fs {
			if fErr = f(line); fErr != nil {
				break
			}
		}
		if fErr == nil {
			if _, err := conn.Write([]byte("ok\n")); err != nil {
				logrus.Errorf("error responding (%v)", err)
			}
		} else {
			logrus.Errorf("error executing callback (%v)", fErr)
			if _, err := conn.Write([]byte(fmt.Sprintf("error (%s)\n", fErr))); err != nil {
				logrus.Errorf("error responding (%v)", err)
			}
		}
	}
}
