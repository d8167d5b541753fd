// Validates the static achievement catalog: unique ids, rule coverage,
// sane secret flags, and that every condition references known counters,
// sections and operators. Exits non-zero when something is off.
package main

import (
	"fmt"
	"os"

	"faltula/achievements"
)

func main() {
	catalog := achievements.Catalog()
	if len(catalog) == 0 {
		fmt.Println("error: catalog is empty")
		os.Exit(1)
	}

	exitCode := 0
	seen := make(map[string]bool, len(catalog))

	for _, a := range catalog {
		if a.ID == "" {
			fmt.Printf("%q: empty id\n", a.Name)
			exitCode = 1
			continue
		}
		if seen[a.ID] {
			fmt.Printf("%s: duplicate id\n", a.ID)
			exitCode = 1
		}
		seen[a.ID] = true

		if a.Name == "" || a.Description == "" {
			fmt.Printf("%s: missing name or description\n", a.ID)
			exitCode = 1
		}

		if a.Secret && a.Category != achievements.CategorySecret {
			fmt.Printf("%s: secret flag outside the secret category\n", a.ID)
			exitCode = 1
		}

		req, ok := achievements.RequirementFor(a.ID)
		if !ok {
			fmt.Printf("%s: no requirement registered\n", a.ID)
			exitCode = 1
			continue
		}
		if len(req.Conditions) == 0 {
			fmt.Printf("%s: requirement has no conditions\n", a.ID)
			exitCode = 1
		}
		if req.Logic != achievements.LogicAll && req.Logic != achievements.LogicAny {
			fmt.Printf("%s: unknown logic %q\n", a.ID, req.Logic)
			exitCode = 1
		}
		if req.Cooldown < 0 {
			fmt.Printf("%s: negative cooldown\n", a.ID)
			exitCode = 1
		}
		for _, problem := range achievements.LintRequirement(req) {
			fmt.Printf("%s: %s\n", a.ID, problem)
			exitCode = 1
		}
	}

	if exitCode == 0 {
		fmt.Printf("OK: %d achievements validated\n", len(catalog))
	}
	os.Exit(exitCode)
}
