// echo_server.go is a minimal upstream that echoes what it received, for
// trying the gate by hand.
// Usage: go run echo_server.go [-listen :9000]
// Then:  apigate serve --upstream http://localhost:9000
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
)

type echoResponse struct {
	Method      string              `json:"method"`
	URI         string              `json:"uri"`
	Whitelisted bool                `json:"whitelisted"`
	Headers     map[string][]string `json:"headers"`
}

func main() {
	listen := flag.String("listen", ":9000", "listen address")
	flag.Parse()

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		resp := echoResponse{
			Method:      r.Method,
			URI:         r.RequestURI,
			Whitelisted: r.Header.Get("X-Api-Request-Whitelisted") == "1",
			Headers:     r.Header,
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Printf("encoding response: %v", err)
		}
	})

	log.Printf("echo upstream listening on %s", *listen)
	log.Fatal(http.ListenAndServe(*listen, nil))
}
