// Package cli is the interactive terminal front end of the geoposts client.
//
// It wires configuration, the local session database, the REST gateway and
// the three flows (auth, map, post creation), then runs a line-oriented REPL.
// The OAuth browser step is done by hand: the authorization page address is
// printed and the user pastes back the address the provider redirected to.
//
// Commands
//
//	login [provider]        sign in (yandex; google, vk and apple are not implemented)
//	logout                  forget the session
//	whoami                  show token subject and expiry
//	region <lat> <lng>      move the map and refresh markers
//	toggle <category>       flip a category filter and refresh markers
//	markers                 refresh and list markers
//	preview <post id>       show a post preview
//	url <content id> [size] print a content address
//	new                     start a draft at the current region
//	draft                   show the draft
//	text <words...>         set the draft text
//	category <category>     set the draft category
//	addimage <path>         queue a JPEG for upload
//	rmimage <n>             drop the n-th queued image
//	rmcontent <content id>  delete an already uploaded image
//	publish                 upload queued images and publish
//	cancel                  abandon the draft
//	stats                   gateway request statistics
//	exit | quit             leave
package cli
