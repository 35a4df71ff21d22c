// Code generated by hand. DO NOT EDIT.

package sample

var generated = counter{}
