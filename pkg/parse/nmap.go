// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package parse

import (
	"encoding/xml"
	"regexp"
	"strconv"
	"strings"

	"github.com/vulntor/scanlens/pkg/report"
)

const nmapMarker = "<nmaprun"

type nmapRun struct {
	XMLName xml.Name   `xml:"nmaprun"`
	Hosts   []nmapHost `xml:"host"`
}

type nmapHost struct {
	Addresses []nmapAddress  `xml:"address"`
	Hostnames []nmapHostname `xml:"hostnames>hostname"`
	Ports     []nmapPort     `xml:"ports>port"`
}

type nmapAddress struct {
	Addr     string `xml:"addr,attr"`
	AddrType string `xml:"addrtype,attr"`
}

type nmapHostname struct {
	Name string `xml:"name,attr"`
}

type nmapPort struct {
	Protocol string       `xml:"protocol,attr"`
	PortID   string       `xml:"portid,attr"`
	State    nmapState    `xml:"state"`
	Service  *nmapService `xml:"service"`
}

type nmapState struct {
	State string `xml:"state,attr"`
}

type nmapService struct {
	Name    string `xml:"name,attr"`
	Product string `xml:"product,attr"`
	Version string `xml:"version,attr"`
}

// Regex fallback for truncated documents (an interrupted nmap run leaves the
// XML unterminated, which encoding/xml rejects).
var (
	nmapAddressRe  = regexp.MustCompile(`<address addr="([^"]+)" addrtype="ipv4"`)
	nmapHostnameRe = regexp.MustCompile(`<hostname name="([^"]+)"`)
	nmapPortRe     = regexp.MustCompile(`(?s)<port protocol="([^"]+)" portid="(\d+)">(.*?)</port>`)
	nmapStateRe    = regexp.MustCompile(`<state state="([^"]+)"`)
	nmapServiceRe  = regexp.MustCompile(`<service\s[^>]*>`)
	nmapAttrRe     = regexp.MustCompile(`(\w+)="([^"]*)"`)
)

// ParseNmap parses an Nmap XML report. Only open ports are kept, and each
// port's service is taken from that port's own <service> element.
func ParseNmap(content string) *report.NmapResult {
	return guard(ToolNmap, func() *report.NmapResult {
		if !strings.Contains(content, nmapMarker) {
			malformed(ToolNmap, "Nmap marker missing", nil)
			return nil
		}

		var run nmapRun
		if err := xml.Unmarshal([]byte(content), &run); err != nil {
			malformed(ToolNmap, "Nmap XML decode failed, using pattern fallback", err)
			return parseNmapFallback(content)
		}
		return nmapFromRun(run)
	})
}

func nmapFromRun(run nmapRun) *report.NmapResult {
	var ip, hostname string
	for _, h := range run.Hosts {
		for _, a := range h.Addresses {
			if ip == "" && a.AddrType == "ipv4" && a.Addr != "" {
				ip = a.Addr
			}
		}
		for _, hn := range h.Hostnames {
			if hostname == "" && hn.Name != "" {
				hostname = hn.Name
			}
		}
	}
	if ip == "" {
		malformed(ToolNmap, "Nmap report has no IPv4 address", nil)
		return nil
	}

	res := &report.NmapResult{
		Target: orDefault(hostname, ip),
		IP:     ip,
		Ports:  []report.PortEntry{},
	}

	for _, h := range run.Hosts {
		for _, p := range h.Ports {
			if p.State.State != "open" {
				continue
			}
			port, err := strconv.Atoi(p.PortID)
			if err != nil {
				continue
			}
			entry := report.PortEntry{
				Port:     port,
				Protocol: p.Protocol,
				State:    p.State.State,
				Service:  report.Unknown,
			}
			if p.Service != nil {
				entry.Service = orDefault(p.Service.Name, report.Unknown)
				entry.Version = strings.TrimSpace(p.Service.Product + " " + p.Service.Version)
			}
			res.Ports = append(res.Ports, entry)
		}
	}

	return res
}

func parseNmapFallback(content string) *report.NmapResult {
	addr := nmapAddressRe.FindStringSubmatch(content)
	if addr == nil {
		malformed(ToolNmap, "Nmap report has no IPv4 address", nil)
		return nil
	}
	ip := addr[1]

	target := ip
	if hn := nmapHostnameRe.FindStringSubmatch(content); hn != nil {
		target = hn[1]
	}

	res := &report.NmapResult{Target: target, IP: ip, Ports: []report.PortEntry{}}

	for _, m := range nmapPortRe.FindAllStringSubmatch(content, -1) {
		protocol, portID, body := m[1], m[2], m[3]

		state := nmapStateRe.FindStringSubmatch(body)
		if state == nil || state[1] != "open" {
			continue
		}
		port, err := strconv.Atoi(portID)
		if err != nil {
			continue
		}

		entry := report.PortEntry{
			Port:     port,
			Protocol: protocol,
			State:    state[1],
			Service:  report.Unknown,
		}
		if tag := nmapServiceRe.FindString(body); tag != "" {
			attrs := make(map[string]string)
			for _, a := range nmapAttrRe.FindAllStringSubmatch(tag, -1) {
				attrs[a[1]] = a[2]
			}
			entry.Service = orDefault(attrs["name"], report.Unknown)
			entry.Version = strings.TrimSpace(attrs["product"] + " " + attrs["version"])
		}
		res.Ports = append(res.Ports, entry)
	}

	return res
}
