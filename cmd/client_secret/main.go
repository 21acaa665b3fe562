package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"travel-agent/internal/service"
)

// Genera el hash bcrypt para API_CLIENT_SECRET_HASH.
func main() {
	secret := flag.String("secret", "", "secreto del cliente (si se omite se lee de stdin)")
	flag.Parse()

	value := strings.TrimSpace(*secret)
	if value == "" {
		fmt.Fprint(os.Stderr, "Secreto: ")
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		value = strings.TrimSpace(line)
	}
	if value == "" {
		log.Fatal("secret required")
	}

	hash, err := service.HashClientSecret(value)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("API_CLIENT_SECRET_HASH=%s\n", hash)
}
