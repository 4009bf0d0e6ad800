// Package bogus provides an HTTP test double: a real listener on an
// ephemeral port that answers with handlers registered per method and path.
//
// Usage example:
//
//	srv := bogus.New()
//	srv.Register("/json", bogus.Respond(`[{"foo":"bar"}]`, 201),
//	    bogus.Method("POST"),
//	    bogus.Headers(map[string]string{"Location": "/foo/bar"}),
//	)
//	url, err := srv.Serve()
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer srv.Close(context.Background())
//
//	// exercise the client against url, then
//	paths := srv.CalledPaths()
//
// Requests to routes nobody registered answer 200 with an empty body
// unless the server was created WithPromiscuous(false), in which case
// they answer 404.
//
// Each response is written to the connection exactly as Response.String
// renders it, reason phrase "OK" included, and the connection is closed
// afterwards. Clients must not expect keep-alive.
package bogus
