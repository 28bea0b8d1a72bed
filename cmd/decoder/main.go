// Command decoder runs the content-protection decoder as a standalone
// process, speaking the host framing protocol over a TCP connection or
// stdio.
package main

func main() {
	execute()
}
