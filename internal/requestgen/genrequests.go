package requestgen

import (
	"strconv"

	"github.com/dchest/uniuri"
	"github.com/hornet-web/hornet/http/headers"
)

// Headers generates n headers with random values. The last one is always Host.
func Headers(n int) *headers.Headers {
	hdrs := headers.New(n)

	for i := 0; i < n-1; i++ {
		hdrs.Add("X-Random-Header-"+strconv.Itoa(i), uniuri.NewLen(16))
	}

	if n > 0 {
		hdrs.Add("Host", "localhost")
	}

	return hdrs
}

func HeadersBlock(hdrs *headers.Headers) (buff []byte) {
	for key, value := range hdrs.Iter() {
		buff = append(buff, key+": "+value+"\r\n"...)
	}

	return buff
}

// Generate renders a GET request with the headers. The target is used as is.
func Generate(target string, hdrs *headers.Headers) (request []byte) {
	request = append(request, "GET "+target+" HTTP/1.1\r\n"...)
	request = append(request, HeadersBlock(hdrs)...)

	return append(request, '\r', '\n')
}
