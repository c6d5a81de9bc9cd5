// Package node defines the typed nodes of the compiled project graph and the
// stable references that cross-link them.
//
// Every node variant corresponds to one object class of the on-disk project
// format: file references, groups, build files, build phases, targets,
// configuration lists and the root project object. Nodes are plain data; all
// creation and cross-linking happens through the graph store, and once the
// compilation pass seals the store the whole graph is read-only.
package node
