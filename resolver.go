package statsd

/*

Copyright (c) 2017 Andrey Smirnov

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.

*/

import (
	"net"
)

// Resolver yields address of statsd server
type Resolver interface {
	Resolve() (*net.UDPAddr, error)
}

// ResolverFunc is an adapter to use ordinary functions as Resolver
type ResolverFunc func() (*net.UDPAddr, error)

// Resolve calls f()
func (f ResolverFunc) Resolve() (*net.UDPAddr, error) {
	return f()
}

type staticResolver struct {
	addr *net.UDPAddr
}

func (r staticResolver) Resolve() (*net.UDPAddr, error) {
	return r.addr, nil
}

// NewStaticResolver looks up addr ("host:port") once and always returns the result
//
// Error is returned if lookup fails.
func NewStaticResolver(addr string) (Resolver, error) {
	udpAddr, err := NewVolatileResolver(addr).Resolve()
	if err != nil {
		return nil, err
	}

	return staticResolver{addr: udpAddr}, nil
}

// NewVolatileResolver looks up addr ("host:port") on every call, so IP
// changes behind a stable host name are picked up
func NewVolatileResolver(addr string) Resolver {
	return ResolverFunc(func() (*net.UDPAddr, error) {
		udpAddr, err := net.ResolveUDPAddr("udp", addr)
		if err != nil {
			return nil, &ResolveError{Addr: addr, Err: err}
		}

		return udpAddr, nil
	})
}
