// Command linkauth-resolve resolves forum URLs against the deep-link route
// table and prints the in-app destination for each. It exists for debugging
// route changes without wiring up the full engine.
//
// Run:
//
//	go run ./cmd/linkauth-resolve bytehub://byte/42/comments https://forum.bytehub.app/t/welcome/1
//
// With no arguments it reads one URL per line from stdin.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/MrEthical07/linkAuth/deeplink"
)

func main() {
	var (
		scheme = flag.String("scheme", "bytehub", "custom URL scheme")
		domain = flag.String("domain", "forum.bytehub.app", "canonical web domain")
	)
	flag.Parse()

	resolver := deeplink.NewResolver(deeplink.Config{
		Scheme: *scheme,
		Domain: *domain,
	})

	urls := flag.Args()
	if len(urls) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				urls = append(urls, line)
			}
		}
		if err := scanner.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "read stdin: %v\n", err)
			os.Exit(1)
		}
	}

	exitCode := 0
	for _, raw := range urls {
		link := resolver.Resolve(raw)
		if link == nil {
			fmt.Printf("%s\n  -> not ours\n", raw)
			exitCode = 1
			continue
		}

		var notes []string
		if link.IsAuthCallback {
			notes = append(notes, "auth-callback")
		}
		if link.RequiresAuth {
			notes = append(notes, "requires-auth")
		}
		if link.Category != deeplink.CategoryNone {
			notes = append(notes, "category="+link.Category.String())
		}
		suffix := ""
		if len(notes) > 0 {
			suffix = "  [" + strings.Join(notes, " ") + "]"
		}
		fmt.Printf("%s\n  -> %s%s\n", raw, link.Path, suffix)
	}
	os.Exit(exitCode)
}
