package api

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("api")

// Serve accepts connections on the listener and serves the Prompt
// service over the JSON-RPC codec, one goroutine per connection. It
// returns when the listener closes.
func Serve(listener net.Listener, service *Prompt) error {
	server := rpc.NewServer()
	if err := server.RegisterName("Prompt", service); err != nil {
		return err
	}

	log.Noticef("JSON-RPC server listening on %s", listener.Addr())
	for {
		conn, err := listener.Accept()
		if err != nil {
			return err
		}

		go func(conn net.Conn) {
			defer conn.Close()
			server.ServeCodec(jsonrpc.NewServerCodec(conn))
		}(conn)
	}
}
