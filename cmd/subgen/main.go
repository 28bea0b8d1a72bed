// Command subgen is an offline fixture generator: given a channel, a time
// range, and encoder-side secrets, it emits wire-format subscription
// update or frame packets that a decoder would accept. It plays the role
// the real eCTF tooling's gen_subscription.py/encoder.py scripts play for
// provisioning and test-vector generation.
package main

func main() {
	execute()
}
