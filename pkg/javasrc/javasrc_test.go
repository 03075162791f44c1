package javasrc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orderService = `/*
 * Licensed to the shop.
 */
package com.example.orders;

import java.util.*;
import org.springframework.stereotype.Service;

/**
 * Places and tracks orders.
 *
 * @since 1.0
 */
@Service
@SuppressWarnings({"unchecked", "rawtypes"})
public class OrderService extends Base implements Api<String, Integer> {

    private static final String PREFIX = "ord-{"; // not a brace
    private final OrderRepository repository;
    private Map<String, List<Integer>> cache = new HashMap<String, List<Integer>>(), spare;
    /** Visible counter. */
    public int count, total[];

    public OrderService(OrderRepository repository) {
        this.repository = repository;
        Runnable r = new Runnable() {
            public void run() { System.out.println("}"); }
        };
    }

    /**
     * Places an order.
     * @param id the order id
     */
    @Override
    public Order place(final String id, @Nullable List<? extends Item> items, int... qty) throws IOException, OrderException {
        if (id == null) { throw new IllegalArgumentException('}' + ""); }
        return repository.save(id);
    }

    public static <T> List<T> copy(List<T> in) { return in; }

    protected abstract void audit();

    static {
        init();
    }

    public enum Status { NEW("n") { }, DONE("d"); Status(String c) {} public String code() { return ""; } }

    interface Listener {
        void onPlaced(Order order);
        default String name() { return "x"; }
    }
}

class Helper {
    String text = """
        a } text block {
        """;
    void help() {}
}
`

func TestParseOutline(t *testing.T) {
	f := Parse(orderService)

	assert.Equal(t, "com.example.orders", f.Package)
	require.Len(t, f.Types, 2)

	svc := f.Types[0]
	assert.Equal(t, "OrderService", svc.Name)
	assert.Equal(t, KindClass, svc.Kind)
	assert.True(t, svc.IsPublic())
	assert.False(t, svc.IsAbstract())
	assert.Equal(t, []string{"Service", "SuppressWarnings"}, svc.Annotations)
	assert.Equal(t, "Places and tracks orders.", DocDescription(svc.Javadoc))
	assert.Equal(t, 1, svc.Constructors)

	var fields []string
	for _, field := range svc.Fields {
		fields = append(fields, field.Name+": "+field.Type)
	}
	assert.Equal(t, []string{
		"PREFIX: String",
		"repository: OrderRepository",
		"cache: Map<String, List<Integer>>",
		"spare: Map<String, List<Integer>>",
		"count: int",
		"total: int",
	}, fields)
	assert.True(t, svc.Fields[0].IsStatic())
	assert.True(t, svc.Fields[4].IsPublic())
	assert.NotEmpty(t, svc.Fields[4].Javadoc)

	require.Len(t, svc.Methods, 3)
	place := svc.Methods[0]
	assert.Equal(t, "place", place.Name)
	assert.Equal(t, "Order", place.ReturnType)
	assert.Equal(t, []string{"String", "List<? extends Item>", "int..."}, place.ParamTypes())
	assert.Equal(t, "id", place.Params[0].Name)
	assert.Equal(t, []string{"IOException", "OrderException"}, place.Throws)
	assert.Equal(t, "place(String, List<? extends Item>, int...)", place.Signature())
	assert.Equal(t, "Places an order.", DocDescription(place.Javadoc))
	assert.True(t, place.IsPublic())
	assert.False(t, place.IsVoid())

	copyMethod := svc.Methods[1]
	assert.Equal(t, "copy", copyMethod.Name)
	assert.Equal(t, "List<T>", copyMethod.ReturnType)
	assert.True(t, copyMethod.IsStatic())

	assert.Equal(t, "audit", svc.Methods[2].Name)
	assert.True(t, svc.Methods[2].IsVoid())

	require.Len(t, svc.Nested, 2)
	status := svc.Nested[0]
	assert.Equal(t, KindEnum, status.Kind)
	assert.Equal(t, 1, status.Constructors)
	require.Len(t, status.Methods, 1)
	assert.Equal(t, "code", status.Methods[0].Name)

	listener := svc.Nested[1]
	assert.Equal(t, KindInterface, listener.Kind)
	require.Len(t, listener.Methods, 2)
	assert.False(t, listener.Methods[0].IsPublic())

	helper := f.Types[1]
	assert.Equal(t, "Helper", helper.Name)
	assert.False(t, helper.IsPublic())
	require.Len(t, helper.Fields, 1)
	require.Len(t, helper.Methods, 1)
	assert.Equal(t, "help", helper.Methods[0].Name)
}

func TestAllTypesOrder(t *testing.T) {
	f := Parse(orderService)

	var names []string
	for _, typ := range f.AllTypes() {
		names = append(names, typ.Name)
	}
	assert.Equal(t, []string{"OrderService", "Status", "Listener", "Helper"}, names)
	assert.Equal(t, "OrderService", f.FirstClass().Name)
}

func TestFirstClassSkipsInterfaces(t *testing.T) {
	f := Parse(`package a; public interface Port { void send(); } final class Impl implements Port { public void send() {} }`)
	assert.Equal(t, "Port", f.FirstClassOrInterface().Name)

	impl := f.FirstClass()
	require.NotNil(t, impl)
	assert.Equal(t, "Impl", impl.Name)
	assert.True(t, impl.IsFinal())

	assert.Nil(t, Parse(`package a; interface Only {}`).FirstClass())
}

func TestRecordsAndAnnotations(t *testing.T) {
	f := Parse(`
public record Point(int x, int y) {
    public Point {
        if (x < 0) throw new IllegalArgumentException();
    }
    public double length() { return Math.sqrt(x * x + y * y); }
}
@interface Marker { String value() default "}"; int[] ids() default {1, 2}; }
`)
	require.Len(t, f.Types, 2)

	point := f.Types[0]
	assert.Equal(t, KindRecord, point.Kind)
	assert.Equal(t, 1, point.Constructors)
	require.Len(t, point.Methods, 1)
	assert.Equal(t, "double", point.Methods[0].ReturnType)

	marker := f.Types[1]
	assert.Equal(t, KindAnnotation, marker.Kind)
	require.Len(t, marker.Methods, 2)
	assert.Equal(t, "int[]", marker.Methods[1].ReturnType)
	assert.False(t, marker.IsClassOrInterface())
}

func TestDocDescription(t *testing.T) {
	assert.Equal(t, "First line.\nSecond line.", DocDescription(`/**
     * First line.
     * Second line.
     *
     * @return nothing
     */`))
	assert.Equal(t, "", DocDescription("/** @deprecated */"))
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(t.TempDir() + "/Missing.java")
	assert.Error(t, err)
}
